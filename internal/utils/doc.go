// Package utils provides small helpers shared by the command line layer.
package utils
