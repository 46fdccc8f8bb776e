package main

import (
	"os"
	"strings"

	"SharedBoard/cmd"
	bnet "SharedBoard/internal/net"
)

func main() {
	// opened from a share link, e.g. by the desktop's URL handler
	if len(os.Args) == 2 && strings.HasPrefix(os.Args[1], bnet.Scheme+"://") {
		cmd.ExecuteArgs([]string{"draw", os.Args[1]})
		return
	}
	cmd.Execute()
}
