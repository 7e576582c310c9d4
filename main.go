package main

import "github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/cmd"

func main() {
	cmd.Execute()
}
