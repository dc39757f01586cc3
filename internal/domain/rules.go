package domain

import "note-bookmark-server/pkg/validate"

var RegisterRules = validate.RuleSet{
	{Field: "name", Type: validate.String, Required: true},
	{Field: "email", Type: validate.String, Required: true},
	{Field: "password", Type: validate.String, Required: true},
}

var LoginRules = validate.RuleSet{
	{Field: "email", Type: validate.String, Required: true},
	{Field: "password", Type: validate.String, Required: true},
}

var NoteRules = validate.RuleSet{
	{Field: "title", Type: validate.String, Required: true},
	{Field: "content", Type: validate.String, Required: true},
	{Field: "tags", Type: validate.Array},
}

var BookmarkRules = validate.RuleSet{
	{Field: "title", Type: validate.String},
	{Field: "url", Type: validate.String, Required: true},
	{Field: "tags", Type: validate.Array},
}
