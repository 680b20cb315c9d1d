// Command ideatool runs idea-count imports and reports against the configured
// MongoDB without going through the HTTP API.
package main

func main() {
	Execute()
}
