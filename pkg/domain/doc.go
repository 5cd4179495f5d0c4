// Package domain contains the core entities of the Radio Mirchi game: missions,
// the propaganda generated for them and the dialogue spoken by their hosts.
// The types are free of infrastructure concerns so they can be shared by the
// storage, provider and transport layers.
package domain
