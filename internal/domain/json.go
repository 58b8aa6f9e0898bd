package domain

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes a value with the portal's JSON configuration. Every blob
// written through the key-value store goes through here.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a value with the portal's JSON configuration.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
