package main

import "github.com/musyaffa-iman/EchoShift/internal/cli"

func main() {
	cli.Execute()
}
