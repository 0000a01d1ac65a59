// ABOUTME: Classifies raw chat input into bot requests
// ABOUTME: Literal first-token matching; anything unrecognized is plain text
package command

import "strings"

// Kind identifies the request a message carries
type Kind int

// Request kinds, one per recognized command plus PlainText for everything else.
const (
	PlainText         Kind = iota // text to learn
	GenerateByWord                // /q WORD
	GetCountByWord                // /count WORD
	DisableAutoReply              // /off
	EnableAutoReply               // /on
	ChangeActiveTable             // /settable NAME
	GetActiveTable                // /table
	ListTables                    // /tables
	NewUserGreeting               // /start
	Help                          // /help
	AdminHelp                     // /adminhelp
)

var kindNames = map[Kind]string{
	PlainText:         "plain_text",
	GenerateByWord:    "generate_by_word",
	GetCountByWord:    "get_count_by_word",
	DisableAutoReply:  "disable_auto_reply",
	EnableAutoReply:   "enable_auto_reply",
	ChangeActiveTable: "change_active_table",
	GetActiveTable:    "get_active_table",
	ListTables:        "list_tables",
	NewUserGreeting:   "new_user_greeting",
	Help:              "help",
	AdminHelp:         "admin_help",
}

// String returns the snake_case name of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Request is a parsed message. Arg is set for commands taking one argument;
// Text always holds the original input.
type Request struct {
	Kind Kind
	Arg  string
	Text string
}

type entry struct {
	kind    Kind
	takeArg bool
}

var commands = map[string]entry{
	"/q":         {GenerateByWord, true},
	"/count":     {GetCountByWord, true},
	"/off":       {DisableAutoReply, false},
	"/on":        {EnableAutoReply, false},
	"/settable":  {ChangeActiveTable, true},
	"/table":     {GetActiveTable, false},
	"/tables":    {ListTables, false},
	"/start":     {NewUserGreeting, false},
	"/help":      {Help, false},
	"/adminhelp": {AdminHelp, false},
}

// Parse classifies input. Commands with an argument need exactly one;
// otherwise the input is plain text.
func Parse(input string) Request {
	plain := Request{Kind: PlainText, Text: input}

	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return plain
	}

	c, ok := commands[tokens[0]]
	if !ok {
		return plain
	}
	if !c.takeArg {
		return Request{Kind: c.kind, Text: input}
	}
	if len(tokens) != 2 {
		return plain
	}
	return Request{Kind: c.kind, Arg: tokens[1], Text: input}
}
