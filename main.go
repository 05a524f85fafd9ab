package main

import "rasa-cafe/cmd"

func main() {
	cmd.Execute()
}
