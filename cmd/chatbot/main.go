package main

import "chatbot/internal/cli"

func main() {
	cli.Execute()
}
