package testutil

// ValidProject is a small design that passes validation: a leaf module with
// one pipe input and one pipe output, instantiated once by a top module
// that wires both ports to its own interface.
var ValidProject = map[string]string{
	"configs.hcl": `config "WIDTH" {
  value = 32
  group = "bus"
}

config "DEPTH" {
  value = WIDTH / 8
}

config "SPARE" {
  value = 7
}
`,
	"bundles.hcl": `bundle "word" {
  tags = ["bus"]
  member "data" {
    type   = "__uint__"
    length = "WIDTH"
  }
}
`,
	"modules/leaf.hcl": `module "leaf" {
  config "N" { value = "DEPTH * 2" }
  pipe_input "in" { type = "word" }
  pipe_output "out" { type = "word" }
}
`,
	"modules/top.hcl": `module "top" {
  pipe_input "src" { type = "word" }
  pipe_output "dst" { type = "word" }
  instance "u0" { module = "leaf" }
  pipe_connect {
    instance = "u0"
    port     = "in"
    pipe     = "src"
  }
  pipe_connect {
    instance = "u0"
    port     = "out"
    pipe     = "dst"
  }
  update {
    before = "__top__"
    after  = "u0"
  }
}
`,
}

// WithFile returns a copy of files with one more entry.
func WithFile(files map[string]string, name, content string) map[string]string {
	out := make(map[string]string, len(files)+1)
	for k, v := range files {
		out[k] = v
	}
	out[name] = content
	return out
}
