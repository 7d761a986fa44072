package main

import "github.com/derickschaefer/meteo/cmd"

func main() {
	cmd.Execute()
}
