package main

import "github.com/heroiclabs/sdkbuild/cmd/sdkbuild/internal"

func main() {
	internal.Execute()
}
