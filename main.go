package main

import "github.com/jcfischer/supertag-cli-sub000/cmd"

func main() {
	cmd.Execute()
}
