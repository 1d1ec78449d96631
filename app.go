package main

import "github.com/masmgr/repometrics-go/cmd"

func main() {
	cmd.Run()
}
