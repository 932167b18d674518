// Command scopecheck maintains the record catalogue and runs operating unit
// consistency audits, checks and guarded writes against it.
package main

func main() {
	execute()
}
