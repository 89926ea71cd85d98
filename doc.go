// Package ftp implements a minimal FTP client: control-channel login and
// command handshaking, passive-mode data transfer, and directory and file
// operations against a conforming server.
//
// # Overview
//
// The client drives one control connection at a time. Every exported
// method blocks until the server's reply for that command has been read;
// callers must not issue overlapping commands on the same connection.
//
//	client, err := ftp.Dial("ftp.example.com:2121")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Quit()
//
//	if err := client.Login("user", "pass"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Data transfer
//
// LIST, RETR, and STOR all negotiate a fresh passive-mode data connection
// per call (see Client.List, Client.Retrieve, Client.Store):
//
//	file, err := os.Create("local.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	if err := client.Retrieve("remote.txt", file); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error handling
//
// Errors carry the reply code and message from the server; use errors.As
// to inspect them:
//
//	if err := client.Store("file.txt", reader); err != nil {
//	    var te *ftp.TransferError
//	    if errors.As(err, &te) {
//	        fmt.Printf("transfer failed: %d %s\n", te.Code, te.Text)
//	    }
//	}
package ftp
