// Package security builds client TLS settings for backends served over a
// private CA or requiring mutual TLS.
//
//	tlsCfg, err := (&security.TLSConfig{CAFile: "/etc/modelgate/ca.pem"}).Build()
package security
