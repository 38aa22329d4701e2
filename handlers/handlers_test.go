package handlers

import "github.com/ximion/appstream-generator-sub002"

func newTestComponent() *asgen.Component {
	return &asgen.Component{ID: "org.example.foo", Kind: asgen.KindDesktopApp, Name: "Foo"}
}
