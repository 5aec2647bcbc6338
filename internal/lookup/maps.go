// Package lookup projects ledger snapshots into id-to-name lookup tables.
// Maps are rebuilt before every logical operation and never cached across
// calls, since a sync may change any entity between requests.
package lookup

import (
	"strconv"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
)

// Maps resolves entity ids to display names and accounts to their currency
// instrument. Unknown ids fall back to the id itself so enriched output
// never loses information.
type Maps struct {
	accounts           map[string]string
	tags               map[string]string
	instruments        map[int]string
	accountInstruments map[string]int
}

// Build creates lookup maps from full entity snapshots.
func Build(accounts []domain.Account, tags []domain.Tag, instruments []domain.Instrument) *Maps {
	m := &Maps{
		accounts:           make(map[string]string, len(accounts)),
		tags:               make(map[string]string, len(tags)),
		instruments:        make(map[int]string, len(instruments)),
		accountInstruments: make(map[string]int, len(accounts)),
	}

	for _, acc := range accounts {
		m.accounts[acc.ID] = acc.Title
		if acc.Instrument != nil {
			m.accountInstruments[acc.ID] = *acc.Instrument
		}
	}
	for _, tag := range tags {
		m.tags[tag.ID] = tag.Title
	}
	for _, instr := range instruments {
		m.instruments[instr.ID] = instr.Symbol
	}

	return m
}

// AccountName resolves an account id to its title.
func (m *Maps) AccountName(id string) string {
	if title, ok := m.accounts[id]; ok {
		return title
	}
	return id
}

// TagName resolves a tag id to its title.
func (m *Maps) TagName(id string) string {
	if title, ok := m.tags[id]; ok {
		return title
	}
	return id
}

// InstrumentSymbol resolves an instrument id to its currency symbol.
func (m *Maps) InstrumentSymbol(id int) string {
	if symbol, ok := m.instruments[id]; ok {
		return symbol
	}
	return strconv.Itoa(id)
}

// AccountInstrument returns the instrument id configured on the account,
// if the account is known and carries one.
func (m *Maps) AccountInstrument(id string) (int, bool) {
	instr, ok := m.accountInstruments[id]
	return instr, ok
}
