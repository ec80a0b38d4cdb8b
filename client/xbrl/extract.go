package xbrl

import (
	"strconv"
	"strings"
)

// Item is one financial line item of the normalized fact schema. The set
// is closed: every item has an entry in tagSpellings and belongs to
// exactly one statement slice below.
type Item string

const (
	// balance sheet
	ItemCurrentAssets          Item = "currentAssets"
	ItemNonCurrentAssets       Item = "nonCurrentAssets"
	ItemTotalAssets            Item = "totalAssets"
	ItemCashAndDeposits        Item = "cashAndDeposits"
	ItemTradeReceivables       Item = "tradeReceivables"
	ItemInventories            Item = "inventories"
	ItemPropertyPlantEquipment Item = "propertyPlantEquipment"
	ItemCurrentLiabilities     Item = "currentLiabilities"
	ItemNonCurrentLiabilities  Item = "nonCurrentLiabilities"
	ItemTotalLiabilities       Item = "totalLiabilities"
	ItemNetAssets              Item = "netAssets"
	ItemRetainedEarnings       Item = "retainedEarnings"

	// profit and loss
	ItemNetSales            Item = "netSales"
	ItemCostOfSales         Item = "costOfSales"
	ItemGrossProfit         Item = "grossProfit"
	ItemSGAExpenses         Item = "sellingGeneralAdminExpenses"
	ItemOperatingIncome     Item = "operatingIncome"
	ItemNonOperatingIncome  Item = "nonOperatingIncome"
	ItemNonOperatingExpense Item = "nonOperatingExpenses"
	ItemOrdinaryIncome      Item = "ordinaryIncome"
	ItemIncomeBeforeTaxes   Item = "incomeBeforeIncomeTaxes"
	ItemNetIncome           Item = "netIncome"

	// cash flow
	ItemOperatingCashFlow Item = "operatingCashFlow"
	ItemInvestingCashFlow Item = "investingCashFlow"
	ItemFinancingCashFlow Item = "financingCashFlow"
	ItemCashEndOfPeriod   Item = "cashAndEquivalentsEndOfPeriod"
)

var (
	balanceSheetItems = []Item{
		ItemCurrentAssets, ItemNonCurrentAssets, ItemTotalAssets,
		ItemCashAndDeposits, ItemTradeReceivables, ItemInventories,
		ItemPropertyPlantEquipment, ItemCurrentLiabilities,
		ItemNonCurrentLiabilities, ItemTotalLiabilities, ItemNetAssets,
		ItemRetainedEarnings,
	}

	profitLossItems = []Item{
		ItemNetSales, ItemCostOfSales, ItemGrossProfit, ItemSGAExpenses,
		ItemOperatingIncome, ItemNonOperatingIncome, ItemNonOperatingExpense,
		ItemOrdinaryIncome, ItemIncomeBeforeTaxes, ItemNetIncome,
	}

	cashFlowItems = []Item{
		ItemOperatingCashFlow, ItemInvestingCashFlow, ItemFinancingCashFlow,
		ItemCashEndOfPeriod,
	}
)

// tagSpellings maps every item to its known tag spellings, tried in
// order. The same concept appears under different namespace prefixes
// across taxonomy vintages: jppfs_cor is the current financial-statement
// taxonomy, jpcrp_cor the report-summary taxonomy, jpfr-t-cte the
// pre-2014 one. The order encodes observed reliability; don't reorder.
var tagSpellings = map[Item][]string{
	ItemCurrentAssets: {
		"jppfs_cor:CurrentAssets",
		"jpfr-t-cte:CurrentAssets",
	},
	ItemNonCurrentAssets: {
		"jppfs_cor:NoncurrentAssets",
		"jpfr-t-cte:NoncurrentAssets",
	},
	ItemTotalAssets: {
		"jppfs_cor:Assets",
		"jppfs_cor:TotalAssets",
		"jpfr-t-cte:Assets",
	},
	ItemCashAndDeposits: {
		"jppfs_cor:CashAndDeposits",
		"jpfr-t-cte:CashAndDeposits",
	},
	ItemTradeReceivables: {
		"jppfs_cor:NotesAndAccountsReceivableTrade",
		"jppfs_cor:AccountsReceivableTrade",
		"jpfr-t-cte:NotesAndAccountsReceivableTrade",
	},
	ItemInventories: {
		"jppfs_cor:Inventories",
		"jppfs_cor:MerchandiseAndFinishedGoods",
		"jpfr-t-cte:Inventories",
	},
	ItemPropertyPlantEquipment: {
		"jppfs_cor:PropertyPlantAndEquipment",
		"jpfr-t-cte:PropertyPlantAndEquipment",
	},
	ItemCurrentLiabilities: {
		"jppfs_cor:CurrentLiabilities",
		"jpfr-t-cte:CurrentLiabilities",
	},
	ItemNonCurrentLiabilities: {
		"jppfs_cor:NoncurrentLiabilities",
		"jpfr-t-cte:NoncurrentLiabilities",
	},
	ItemTotalLiabilities: {
		"jppfs_cor:Liabilities",
		"jpfr-t-cte:Liabilities",
	},
	ItemNetAssets: {
		"jppfs_cor:NetAssets",
		"jpfr-t-cte:NetAssets",
	},
	ItemRetainedEarnings: {
		"jppfs_cor:RetainedEarnings",
		"jpfr-t-cte:RetainedEarnings",
	},

	ItemNetSales: {
		"jppfs_cor:NetSales",
		"jpcrp_cor:NetSalesSummaryOfBusinessResults",
		"jppfs_cor:OperatingRevenue1",
		"jpfr-t-cte:NetSales",
	},
	ItemCostOfSales: {
		"jppfs_cor:CostOfSales",
		"jpfr-t-cte:CostOfSales",
	},
	ItemGrossProfit: {
		"jppfs_cor:GrossProfit",
		"jpfr-t-cte:GrossProfit",
	},
	ItemSGAExpenses: {
		"jppfs_cor:SellingGeneralAndAdministrativeExpenses",
		"jpfr-t-cte:SellingGeneralAndAdministrativeExpenses",
	},
	ItemOperatingIncome: {
		"jppfs_cor:OperatingIncome",
		"jpcrp_cor:OperatingIncomeLossSummaryOfBusinessResults",
		"jpfr-t-cte:OperatingIncome",
	},
	ItemNonOperatingIncome: {
		"jppfs_cor:NonOperatingIncome",
		"jpfr-t-cte:NonOperatingIncome",
	},
	ItemNonOperatingExpense: {
		"jppfs_cor:NonOperatingExpenses",
		"jpfr-t-cte:NonOperatingExpenses",
	},
	ItemOrdinaryIncome: {
		"jppfs_cor:OrdinaryIncome",
		"jpcrp_cor:OrdinaryIncomeLossSummaryOfBusinessResults",
		"jpfr-t-cte:OrdinaryIncome",
	},
	ItemIncomeBeforeTaxes: {
		"jppfs_cor:IncomeBeforeIncomeTaxes",
		"jpfr-t-cte:IncomeBeforeIncomeTaxes",
	},
	ItemNetIncome: {
		"jppfs_cor:ProfitLoss",
		"jppfs_cor:NetIncome",
		"jpcrp_cor:NetIncomeLossSummaryOfBusinessResults",
		"jpfr-t-cte:NetIncome",
	},

	ItemOperatingCashFlow: {
		"jppfs_cor:NetCashProvidedByUsedInOperatingActivities",
		"jpcrp_cor:NetCashProvidedByUsedInOperatingActivitiesSummaryOfBusinessResults",
		"jpfr-t-cte:NetCashProvidedByUsedInOperatingActivities",
	},
	ItemInvestingCashFlow: {
		"jppfs_cor:NetCashProvidedByUsedInInvestmentActivities",
		"jpcrp_cor:NetCashProvidedByUsedInInvestingActivitiesSummaryOfBusinessResults",
		"jpfr-t-cte:NetCashProvidedByUsedInInvestmentActivities",
	},
	ItemFinancingCashFlow: {
		"jppfs_cor:NetCashProvidedByUsedInFinancingActivities",
		"jpcrp_cor:NetCashProvidedByUsedInFinancingActivitiesSummaryOfBusinessResults",
		"jpfr-t-cte:NetCashProvidedByUsedInFinancingActivities",
	},
	ItemCashEndOfPeriod: {
		"jppfs_cor:CashAndCashEquivalents",
		"jpcrp_cor:CashAndCashEquivalentsSummaryOfBusinessResults",
		"jpfr-t-cte:CashAndCashEquivalents",
	},
}

// Conventional context identifiers substituted when a filing declares no
// parseable contexts at all.
const (
	DefaultInstantContext  = "CurrentYearInstant"
	DefaultDurationContext = "CurrentYearDuration"
)

// Markers of the reporting period's own contexts, as opposed to
// prior-year comparatives.
var currentPeriodMarkers = []string{"CurrentYear", "CurrentQuarter",
	"CurrentYTD"}

// FactSet is the normalized extraction result. A nil value means no
// known tag spelling resolved for the required context, which is a
// valid, expected outcome.
type FactSet struct {
	BalanceSheet map[Item]*float64 `json:"balanceSheet"`
	ProfitLoss   map[Item]*float64 `json:"profitLoss"`
	CashFlow     map[Item]*float64 `json:"cashFlow"`
	Metadata     Metadata          `json:"metadata"`
}

type Metadata struct {
	DocID       string `json:"docID"`
	FormCode    string `json:"formCode,omitempty"`
	Description string `json:"docDescription,omitempty"`
	SubmitDate  string `json:"submitDate,omitempty"`
	FoundDate   string `json:"foundDate,omitempty"`
}

// Extract maps the fixed schema of line items onto the document. Balance
// sheet items resolve against the instant context, flow items against
// the duration context, never the other way around. Extraction itself
// never fails: unresolved items stay nil.
func Extract(doc *Document) *FactSet {
	instant, duration := resolveContexts(doc)

	fs := &FactSet{
		BalanceSheet: make(map[Item]*float64, len(balanceSheetItems)),
		ProfitLoss:   make(map[Item]*float64, len(profitLossItems)),
		CashFlow:     make(map[Item]*float64, len(cashFlowItems)),
	}

	for _, item := range balanceSheetItems {
		fs.BalanceSheet[item] = resolveValue(doc, item, instant, KindInstant)
	}
	for _, item := range profitLossItems {
		fs.ProfitLoss[item] = resolveValue(doc, item, duration, KindDuration)
	}
	for _, item := range cashFlowItems {
		fs.CashFlow[item] = resolveValue(doc, item, duration, KindDuration)
	}

	return fs
}

// resolveContexts picks the first declared context of each kind, falling
// back to the conventional default identifiers.
func resolveContexts(doc *Document) (instant, duration string) {
	for _, ctx := range doc.Contexts() {
		switch ctx.Kind {
		case KindInstant:
			if instant == "" {
				instant = ctx.ID
			}
		case KindDuration:
			if duration == "" {
				duration = ctx.ID
			}
		}
		if instant != "" && duration != "" {
			break
		}
	}

	if instant == "" {
		instant = DefaultInstantContext
	}
	if duration == "" {
		duration = DefaultDurationContext
	}
	return
}

// resolveValue tries every known spelling of item in order and returns
// the first numeric value carried by an acceptable context: exact match
// on ctxID first, then a context bearing a current-period marker, then
// any context of the required kind. Entries of the opposite kind are
// never used.
func resolveValue(doc *Document, item Item, ctxID string, kind ContextKind,
) *float64 {
	for _, tag := range tagSpellings[item] {
		entries := acceptableEntries(doc, tag, kind)
		if len(entries) == 0 {
			continue
		}
		if v := pickEntry(entries, ctxID); v != nil {
			return v
		}
	}
	return nil
}

func acceptableEntries(doc *Document, tag string, kind ContextKind,
) []factEntry {
	all := doc.entries(tag)
	entries := make([]factEntry, 0, len(all))
	for _, e := range all {
		entryKind := doc.ContextKind(e.contextRef)
		if entryKind == kind || entryKind == KindUnknown {
			entries = append(entries, e)
		}
	}
	return entries
}

func pickEntry(entries []factEntry, ctxID string) *float64 {
	for _, e := range entries {
		if e.contextRef == ctxID {
			if v := parseNumber(e.value); v != nil {
				return v
			}
		}
	}
	for _, e := range entries {
		if currentPeriodContext(e.contextRef) {
			if v := parseNumber(e.value); v != nil {
				return v
			}
		}
	}
	for _, e := range entries {
		if v := parseNumber(e.value); v != nil {
			return v
		}
	}
	return nil
}

func currentPeriodContext(id string) bool {
	for _, marker := range currentPeriodMarkers {
		if strings.Contains(id, marker) {
			return true
		}
	}
	return false
}

// parseNumber parses a reported value defensively: empty strings, markers
// of absence and non-numeric content all mean "no value", not an error.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "－", "null", "NULL":
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
