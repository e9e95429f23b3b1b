package main

import "github.com/reliefmap/reliefmap/cmd"

func main() {
	cmd.Execute()
}
