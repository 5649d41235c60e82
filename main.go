package main

import "github.com/findy-network/findy-didexchange/cmd"

func main() {
	cmd.Execute()
}
