// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/cityres/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
