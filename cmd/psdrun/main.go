// Command psdrun runs layered design prototypes: it serves sessions over HTTP
// and MCP, plays them in the terminal and checks interaction configs.
package main

func main() {
	Execute()
}
