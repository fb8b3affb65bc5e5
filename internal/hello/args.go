package hello

// GreetArgs defines parameters for the greet tool
type GreetArgs struct {
	Name string `json:"name" jsonschema:"Name of the person to greet"`
}

// GreetResult holds the greeting
type GreetResult struct {
	Result string `json:"result"`
}

// AddArgs defines parameters for the add tool
type AddArgs struct {
	A int `json:"a" jsonschema:"First addend"`
	B int `json:"b" jsonschema:"Second addend"`
}

// AddResult holds the sum
type AddResult struct {
	Result int `json:"result"`
}
