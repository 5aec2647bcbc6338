package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/zenmoney-bridge/internal/domain"
	"github.com/dvloznov/zenmoney-bridge/internal/lookup"
)

// TransactionToProperties converts a ledger transaction to Notion properties.
// Ids are resolved to names so the Notion database reads like a statement.
func TransactionToProperties(tx *domain.Transaction, maps *lookup.Maps) notionapi.Properties {
	kind := domain.Classify(tx)

	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Kind": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(kind),
			},
		},
	}

	// Date
	if parsed, err := time.Parse("2006-01-02", tx.Date); err == nil {
		d := notionapi.Date(parsed)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	// Amount and account depend on the kind: expenses spend from the outcome
	// side, income lands on the income side, transfers show both.
	switch kind {
	case domain.KindIncome:
		props["Amount"] = notionapi.NumberProperty{Number: tx.Income}
		props["Account"] = selectProp(maps.AccountName(tx.IncomeAccount))
		props["Currency"] = selectProp(maps.InstrumentSymbol(tx.IncomeInstrument))
	case domain.KindTransfer:
		props["Amount"] = notionapi.NumberProperty{Number: tx.Outcome}
		props["Account"] = selectProp(maps.AccountName(tx.OutcomeAccount))
		props["Currency"] = selectProp(maps.InstrumentSymbol(tx.OutcomeInstrument))
		props["To Account"] = selectProp(maps.AccountName(tx.IncomeAccount))
		props["To Amount"] = notionapi.NumberProperty{Number: tx.Income}
	default:
		props["Amount"] = notionapi.NumberProperty{Number: tx.Outcome}
		props["Account"] = selectProp(maps.AccountName(tx.OutcomeAccount))
		props["Currency"] = selectProp(maps.InstrumentSymbol(tx.OutcomeInstrument))
	}

	// Tags
	if len(tx.Tags) > 0 {
		options := make([]notionapi.Option, 0, len(tx.Tags))
		for _, id := range tx.Tags {
			options = append(options, notionapi.Option{Name: maps.TagName(id)})
		}
		props["Tags"] = notionapi.MultiSelectProperty{
			MultiSelect: options,
		}
	}

	// Payee
	if tx.Payee != nil && *tx.Payee != "" {
		props["Payee"] = richTextProp(*tx.Payee)
	}

	// Comment
	if tx.Comment != nil && *tx.Comment != "" {
		props["Comment"] = richTextProp(*tx.Comment)
	}

	return props
}

func selectProp(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: name,
		},
	}
}

func richTextProp(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{
					Content: content,
				},
			},
		},
	}
}
