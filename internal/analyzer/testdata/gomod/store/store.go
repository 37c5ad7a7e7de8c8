package store

import "fmt"

type Repo interface {
	Save(id string)
}

type Memory struct {
	items []string
}

func New() *Memory { return &Memory{} }

func (m *Memory) Save(id string) {
	m.items = append(m.items, id)
	Log(id)
}

func Log(msg string) { fmt.Println(msg) }
