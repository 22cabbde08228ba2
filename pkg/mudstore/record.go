package mudstore

import (
	"bytes"
	"encoding/gob"

	"github.com/swampgate/swampmud/pkg/inventory"
)

func init() {
	gob.Register(PlayerRecord{})
	gob.Register(inventory.Data{})
}

// PlayerRecord is the saved form of a player character. Class, location,
// and item types are stored by name and resolved against the library
// and world on restore.
type PlayerRecord struct {
	Name      string
	Class     string
	Location  string
	PassHash  []byte
	Inventory []inventory.StackRecord
	Equipment []EquipRecord
}

// EquipRecord is the saved form of one occupied equipment slot.
type EquipRecord struct {
	Slot     string
	ItemType string
	Data     inventory.Data
	FromInv  bool
}

// encodeRecord serializes a PlayerRecord to bytes using gob.
func encodeRecord(rec *PlayerRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRecord deserializes bytes back into a PlayerRecord.
func decodeRecord(data []byte) (*PlayerRecord, error) {
	var rec PlayerRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
