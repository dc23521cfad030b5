package server

import "github.com/favbox/gust/network/standard"

var defaultTransporter = standard.NewTransporter
