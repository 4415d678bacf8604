// Package config provides configuration types for the bridge client.
package config
