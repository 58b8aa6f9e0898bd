package middleware

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func domainMarshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
