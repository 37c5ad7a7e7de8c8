package main

import "example.com/shop/store"

func main() {
	s := store.New()
	run(s)
}

func run(r store.Repo) {
	r.Save("x")
	helper := func() { store.Log("closure") }
	helper()
}
