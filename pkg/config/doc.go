// Package config defines the widget configuration, its reference defaults and
// the loaders for JSON and YAML files.
//
// Files are decoded over Default(), so a file only needs the keys it changes.
// Durations accept either integer milliseconds or Go duration strings:
//
//	timing:
//	  firstNotification: 2000
//	  redirectDelay: 1.5s
package config
