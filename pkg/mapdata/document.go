// Package mapdata provides the upstream holder-data document model and the
// HTTP client that fetches it.
//
// A map document describes the holder set and transfer volumes for one token
// on one chain. The document is the wire contract with the provider; the
// [graph] package converts it into the internal model.
package mapdata

import "encoding/json"

// Document is the holder/transfer dataset for one token on one chain, as
// returned by the map provider.
type Document struct {
	Chain        string `json:"chain" bson:"chain"`
	TokenAddress string `json:"token_address" bson:"token_address"`
	FullName     string `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Symbol       string `json:"symbol,omitempty" bson:"symbol,omitempty"`
	UpdatedAt    string `json:"dt_update,omitempty" bson:"dt_update,omitempty"`
	Nodes        []Node `json:"nodes" bson:"nodes"`
	Links        []Link `json:"links" bson:"links"`
}

// Node is one holder record in a map document.
type Node struct {
	Address    string  `json:"address" bson:"address"`
	Amount     float64 `json:"amount" bson:"amount"`
	IsContract bool    `json:"is_contract" bson:"is_contract"`
	IsExchange bool    `json:"is_exchange,omitempty" bson:"is_exchange,omitempty"`
	Name       string  `json:"name,omitempty" bson:"name,omitempty"`
	Percentage float64 `json:"percentage,omitempty" bson:"percentage,omitempty"`
}

// Link is one transfer-volume record between two holders. Source and Target
// index into the document's node list.
type Link struct {
	Source   int     `json:"source" bson:"source"`
	Target   int     `json:"target" bson:"target"`
	Forward  float64 `json:"forward" bson:"forward"`
	Backward float64 `json:"backward" bson:"backward"`
}

// Unmarshal decodes a JSON map document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Title returns the display title for the document: "Name (SYMBOL)" when both
// are known, falling back to whichever is present, then the token address.
func (d *Document) Title() string {
	switch {
	case d.FullName != "" && d.Symbol != "":
		return d.FullName + " (" + d.Symbol + ")"
	case d.FullName != "":
		return d.FullName
	case d.Symbol != "":
		return d.Symbol
	default:
		return d.TokenAddress
	}
}
