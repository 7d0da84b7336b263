package main

import "github.com/dbsmedya/blastradius/cmd/blastradius/cmd"

func main() {
	cmd.Execute()
}
