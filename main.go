package main

import "github.com/Ham-Mazz/stock-portfolio-analyzer/cmd"

func main() {
	cmd.Execute()
}
