package main

import "github.com/kidoz/zabbix-cli-go/cmd"

func main() {
	cmd.Execute()
}
