package main

import "devarena/internal/server"

func main() {
	server.StartGinServer()
}
