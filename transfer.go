package ftp

import (
	"io"
)

// Store uploads r to remotePath in binary mode.
//
//	file, err := os.Open("local.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	err = client.Store("remote.txt", file)
func (c *Client) Store(remotePath string, r io.Reader) error {
	if err := c.Type("I"); err != nil {
		return err
	}

	_, dataConn, err := c.cmdDataConnFrom("STOR", remotePath)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(dataConn, r)
	finishErr := c.finishDataConn(dataConn)

	if copyErr != nil {
		return &TransferError{Command: "STOR", Err: copyErr}
	}
	return finishErr
}

// Retrieve downloads remotePath into w in binary mode.
//
//	file, err := os.Create("local.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	err = client.Retrieve("remote.txt", file)
func (c *Client) Retrieve(remotePath string, w io.Writer) error {
	if err := c.Type("I"); err != nil {
		return err
	}

	_, dataConn, err := c.cmdDataConnFrom("RETR", remotePath)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(w, dataConn)
	finishErr := c.finishDataConn(dataConn)

	if copyErr != nil {
		return &TransferError{Command: "RETR", Err: copyErr}
	}
	return finishErr
}
