// Package dispatch routes capability requests to models held in a registry.
//
// A dispatch resolves the model by name, checks the capability tag, merges
// per-call overrides over the model's stored parameters and performs one
// generation. Each dispatch is traced and counted through the observability
// package.
//
//	d, err := dispatch.New(reg)
//	text, err := d.Execute(ctx, dispatch.CapabilityTextGeneration, "deepseek-chat",
//		dispatch.Params{"prompt": "Summarise this", "temperature": 0.2})
package dispatch
