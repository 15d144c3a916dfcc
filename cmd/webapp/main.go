//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
	"github.com/aexpy/aexpyweb/webapp"
)

func main() {
	// Every path goes to the Shell, which resolves it through the route table
	webapp.Register(router.AppTable())

	// This main function is for the WASM build only
	// It initializes the go-app when running in the browser
	app.RunWhenOnBrowser()
}
