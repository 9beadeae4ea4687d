// Package util holds small parsing helpers shared by the server and bootstrap.
package util
