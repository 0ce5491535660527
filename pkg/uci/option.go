package uci

import (
	"errors"
	"fmt"
	"strconv"
)

// Option is one named engine setting exposed through "setoption".
// Setters run on the control thread after any in-flight search drained.
type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

type BoolOption struct {
	Name     string
	Value    *bool
	OnChange func()
}

func (opt *BoolOption) UciName() string {
	return opt.Name
}

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type check default %v", opt.Name, *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*opt.Value = v
	if opt.OnChange != nil {
		opt.OnChange()
	}
	return nil
}

type IntOption struct {
	Name     string
	Min      int
	Max      int
	Value    *int
	OnChange func()
}

func (opt *IntOption) UciName() string {
	return opt.Name
}

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type spin default %v min %v max %v",
		opt.Name, *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v < opt.Min || v > opt.Max {
		return errors.New("argument out of range")
	}
	*opt.Value = v
	if opt.OnChange != nil {
		opt.OnChange()
	}
	return nil
}

type StringOption struct {
	Name     string
	Value    *string
	OnChange func()
}

func (opt *StringOption) UciName() string {
	return opt.Name
}

func (opt *StringOption) UciString() string {
	var v = *opt.Value
	if v == "" {
		v = "<empty>"
	}
	return fmt.Sprintf("option name %v type string default %v", opt.Name, v)
}

func (opt *StringOption) Set(s string) error {
	if s == "<empty>" {
		s = ""
	}
	*opt.Value = s
	if opt.OnChange != nil {
		opt.OnChange()
	}
	return nil
}

// ButtonOption has no value; setting it just fires the action.
type ButtonOption struct {
	Name     string
	OnChange func()
}

func (opt *ButtonOption) UciName() string {
	return opt.Name
}

func (opt *ButtonOption) UciString() string {
	return fmt.Sprintf("option name %v type button", opt.Name)
}

func (opt *ButtonOption) Set(s string) error {
	if opt.OnChange != nil {
		opt.OnChange()
	}
	return nil
}
