// Package model defines the contract every text-generation backend satisfies,
// the ParameterSet value that carries generation knobs and the Conversation
// accumulator callers forward with a prompt.
//
// # Parameters
//
// A ParameterSet is an immutable value. Fields are individually optional so a
// per-call override can be merged over an adapter's defaults:
//
//	base, _ := model.NewParameterSet(0.7, 100)
//	hot, _ := model.ParameterSet{}.WithTemperature(0.9)
//	eff := base.Merge(hot) // temperature=0.9 max_tokens=100
//
// # Writing an adapter
//
// Embed *Base for identity and lock-protected parameter storage and implement
// Generate:
//
//	type Echo struct{ *model.Base }
//
//	func (e *Echo) Generate(ctx context.Context, p model.Prompt, _ model.ParameterSet) (string, error) {
//	    return p.Text, nil
//	}
package model
