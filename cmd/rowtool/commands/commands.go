package commands

import (
	"fmt"
)

type EncodeCommand struct {
	Edge  bool   `help:"Name refers to an edge rather than a tag."`
	Name  string `arg:"" help:"Tag or edge name."`
	Props string `arg:"" help:"JSON object of property values."`
}

func (c *EncodeCommand) Run(env *Env) error {
	row, err := env.Encode(kindOf(c.Edge), c.Name, c.Props)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, row)
	return nil
}

type DecodeCommand struct {
	Edge bool   `help:"Name refers to an edge rather than a tag."`
	Name string `arg:"" help:"Tag or edge name."`
	Row  string `arg:"" help:"Row as hex."`
}

func (c *DecodeCommand) Run(env *Env) error {
	return env.Decode(kindOf(c.Edge), c.Name, c.Row)
}

type VersionsCommand struct {
	Row string `arg:"" help:"Row as hex."`
}

func (c *VersionsCommand) Run(env *Env) error {
	return env.Versions(c.Row)
}

type SchemasCommand struct{}

func (c *SchemasCommand) Run(env *Env) error {
	return env.Schemas()
}
