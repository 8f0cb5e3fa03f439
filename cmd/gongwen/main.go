// Command gongwen lays out, checks, imports and exports official documents
// from the command line.
package main

func main() {
	Execute()
}
