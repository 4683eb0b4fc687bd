package main

import "github.com/AzielCF/telebridge/cmd"

func main() {
	cmd.Execute()
}
