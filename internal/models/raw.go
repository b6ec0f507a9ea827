package models

import (
	"bytes"
	"encoding/json"
)

// FlexString decodes JSON values that the provider sends as either a string
// or a bare number (postcodes, street numbers).
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// RawBatch is the provider response envelope.
type RawBatch struct {
	Results []RawRecord `json:"results"`
}

// RawRecord mirrors the provider's nested record shape. Every nested object
// is optional; the normalizer handles absence in one place.
type RawRecord struct {
	Login    *RawLogin    `json:"login"`
	Name     *RawName     `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	ID       *RawID       `json:"id"`
	DOB      *RawDOB      `json:"dob"`
	Location *RawLocation `json:"location"`
}

type RawLogin struct {
	UUID     string `json:"uuid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RawName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type RawID struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type RawDOB struct {
	Date string `json:"date"`
	Age  int    `json:"age"`
}

type RawLocation struct {
	City     string     `json:"city"`
	Street   *RawStreet `json:"street"`
	Postcode FlexString `json:"postcode"`
	State    string     `json:"state"`
	Country  string     `json:"country"`
}

type RawStreet struct {
	Name   string     `json:"name"`
	Number FlexString `json:"number"`
}
