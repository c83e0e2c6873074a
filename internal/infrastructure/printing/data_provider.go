package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papermill/portal/internal/domain/dispatch"
	"github.com/papermill/portal/internal/domain/inventory"
	"github.com/papermill/portal/internal/domain/printing"
	"github.com/papermill/portal/internal/domain/shared/valueobject"
)

// DataProvider loads the data one document type is rendered from
type DataProvider interface {
	// GetDocType returns the document type this provider handles
	GetDocType() printing.DocType

	// GetData loads and shapes the data for the referenced record
	GetData(ctx context.Context, referenceID string) (*DocumentData, error)
}

// DocumentData is the root object handed to every template
type DocumentData struct {
	Meta    DocumentMeta `json:"meta"`
	Company CompanyInfo  `json:"company"`

	// Document is one of PackingSlipData, ChallanData, MaterialChallanData
	// or DispatchSummaryData
	Document any `json:"document"`

	PrintDate     string `json:"print_date"`
	PrintDateTime string `json:"print_date_time"`
}

// DocumentMeta identifies the printed document
type DocumentMeta struct {
	DocType     printing.DocType `json:"doc_type"`
	DocTypeName string           `json:"doc_type_name"`
	DocNo       string           `json:"doc_no"`
	Status      string           `json:"status"`
	Date        time.Time        `json:"date"`
	CreatedBy   string           `json:"created_by"`
	Remark      string           `json:"remark"`
}

// CompanyInfo is the letterhead
type CompanyInfo struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	GSTIN       string `json:"gstin"`
	StateCode   string `json:"state_code"`
	StateName   string `json:"state_name"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	BankIFSC    string `json:"bank_ifsc"`
}

// PartyInfo is the client or supplier block
type PartyInfo struct {
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	GSTIN     string `json:"gstin"`
	StateCode string `json:"state_code"`
}

// TransportInfo is the vehicle block shared by dispatch documents
type TransportInfo struct {
	VehicleNumber string `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	DriverMobile  string `json:"driver_mobile"`
	LocketNumber  string `json:"locket_number"`
}

// PackingSlipData lists every roll on a dispatch, grouped by order then paper
type PackingSlipData struct {
	DispatchNumber  string          `json:"dispatch_number"`
	DispatchDate    time.Time       `json:"dispatch_date"`
	PrimaryOrder    string          `json:"primary_order"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentType     string          `json:"payment_type"`
	Client          PartyInfo       `json:"client"`
	Transport       TransportInfo   `json:"transport"`
	Groups          []PackingGroup  `json:"groups"`
	TotalRolls      int             `json:"total_rolls"`
	TotalWeightKg   decimal.Decimal `json:"total_weight_kg"`
}

// PackingGroup is one order/paper block with its subtotal
type PackingGroup struct {
	OrderFrontendID string          `json:"order_frontend_id"`
	PaperSpec       string          `json:"paper_spec"`
	Rows            []PackingRow    `json:"rows"`
	Rolls           int             `json:"rolls"`
	WeightKg        decimal.Decimal `json:"weight_kg"`
}

// PackingRow is one roll
type PackingRow struct {
	Index       int             `json:"index"`
	Code        string          `json:"code"`
	WidthInches decimal.Decimal `json:"width_inches"`
	WeightKg    decimal.Decimal `json:"weight_kg"`
}

// ChallanData backs both the cash and the GST challan. GST is nil on a
// cash challan.
type ChallanData struct {
	DispatchNumber string                    `json:"dispatch_number"`
	DispatchDate   time.Time                 `json:"dispatch_date"`
	PrimaryOrder   string                    `json:"primary_order"`
	Client         PartyInfo                 `json:"client"`
	Transport      TransportInfo             `json:"transport"`
	Lines          []ChallanLine             `json:"lines"`
	TotalRolls     int                       `json:"total_rolls"`
	TotalWeightKg  decimal.Decimal           `json:"total_weight_kg"`
	Total          decimal.Decimal           `json:"total"`
	GST            *valueobject.GSTBreakdown `json:"gst,omitempty"`
	GrandTotal     decimal.Decimal           `json:"grand_total"`
	AmountInWords  string                    `json:"amount_in_words"`
}

// ChallanLine is one billed line: rolls of the same paper, width and rate
type ChallanLine struct {
	Index       int             `json:"index"`
	Description string          `json:"description"`
	HSN         string          `json:"hsn"`
	Rolls       int             `json:"rolls"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// MaterialChallanData is a single inward or outward material challan
type MaterialChallanData struct {
	Number           string          `json:"number"`
	Direction        string          `json:"direction"`
	Time             time.Time       `json:"time"`
	MaterialName     string          `json:"material_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	Unit             string          `json:"unit"`
	PartyName        string          `json:"party_name"`
	PartyLabel       string          `json:"party_label"`
	VehicleNumber    string          `json:"vehicle_number"`
	ChallanReference string          `json:"challan_reference"`
	Remarks          string          `json:"remarks"`
	CreatedBy        string          `json:"created_by"`
}

// DispatchSummaryData is a day or date-range register of dispatches
type DispatchSummaryData struct {
	From          time.Time             `json:"from"`
	To            time.Time             `json:"to"`
	Rows          []DispatchSummaryRow  `json:"rows"`
	Count         int                   `json:"count"`
	TotalItems    int                   `json:"total_items"`
	TotalWeightKg decimal.Decimal       `json:"total_weight_kg"`
	ByStatus      []DispatchStatusCount `json:"by_status"`
}

// DispatchSummaryRow is one dispatch in the register
type DispatchSummaryRow struct {
	Index          int             `json:"index"`
	DispatchNumber string          `json:"dispatch_number"`
	DispatchDate   time.Time       `json:"dispatch_date"`
	ClientName     string          `json:"client_name"`
	VehicleNumber  string          `json:"vehicle_number"`
	DriverName     string          `json:"driver_name"`
	Items          int             `json:"items"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	Status         string          `json:"status"`
}

// DispatchStatusCount is a status tally printed under the register
type DispatchStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ChallanSettings carries the tax parameters of challans
type ChallanSettings struct {
	HSNCode          string
	GSTRatePercent   decimal.Decimal
	CompanyStateCode string
}

// NewDocumentData creates the envelope for a document
func NewDocumentData(docType printing.DocType, docNo string, company CompanyInfo, now time.Time) *DocumentData {
	return &DocumentData{
		Meta: DocumentMeta{
			DocType:     docType,
			DocTypeName: docType.DisplayName(),
			DocNo:       docNo,
		},
		Company:       company,
		PrintDate:     now.Format("02-01-2006"),
		PrintDateTime: now.Format("02-01-2006 03:04 PM"),
	}
}

// NewPartyInfo builds the client block of a dispatch
func NewPartyInfo(rec dispatch.Record) PartyInfo {
	if rec.Client == nil {
		return PartyInfo{}
	}
	c := rec.Client
	return PartyInfo{
		Name:      c.CompanyName,
		Contact:   c.ContactPerson,
		Phone:     c.Phone,
		Address:   c.Address,
		GSTIN:     c.GSTNumber,
		StateCode: c.StateCode(),
	}
}

func newTransportInfo(rec dispatch.Record) TransportInfo {
	return TransportInfo{
		VehicleNumber: rec.VehicleNumber,
		DriverName:    rec.DriverName,
		DriverMobile:  rec.DriverMobile,
		LocketNumber:  rec.LocketNumber,
	}
}

// BuildPackingSlip groups a dispatch's rolls by order then paper spec
func BuildPackingSlip(rec dispatch.Record) PackingSlipData {
	data := PackingSlipData{
		DispatchNumber:  rec.Number(),
		DispatchDate:    rec.DispatchDate.Time,
		PrimaryOrder:    rec.PrimaryOrderFrontend,
		ReferenceNumber: rec.ReferenceNumber,
		PaymentType:     rec.PaymentType,
		Client:          NewPartyInfo(rec),
		Transport:       newTransportInfo(rec),
		TotalWeightKg:   decimal.Zero,
	}

	index := 0
	for _, g := range dispatch.GroupItems(rec.Items) {
		group := PackingGroup{
			OrderFrontendID: g.OrderFrontendID,
			PaperSpec:       g.PaperSpec,
			Rolls:           len(g.Items),
			WeightKg:        g.WeightKg,
			Rows:            make([]PackingRow, 0, len(g.Items)),
		}
		for _, it := range g.Items {
			index++
			group.Rows = append(group.Rows, PackingRow{
				Index:       index,
				Code:        it.Code(),
				WidthInches: it.WidthInches,
				WeightKg:    it.WeightKg,
			})
		}
		data.Groups = append(data.Groups, group)
		data.TotalRolls += group.Rolls
		data.TotalWeightKg = data.TotalWeightKg.Add(group.WeightKg)
	}
	return data
}

// BuildChallan prices a dispatch. Rolls sharing paper spec, width and rate
// collapse into one line. With withGST the tax split is computed from the
// company and client state codes and the grand total is rounded to the rupee.
func BuildChallan(rec dispatch.Record, settings ChallanSettings, withGST bool) ChallanData {
	data := ChallanData{
		DispatchNumber: rec.Number(),
		DispatchDate:   rec.DispatchDate.Time,
		PrimaryOrder:   rec.PrimaryOrderFrontend,
		Client:         NewPartyInfo(rec),
		Transport:      newTransportInfo(rec),
		TotalWeightKg:  decimal.Zero,
		Total:          decimal.Zero,
	}

	type key struct{ spec, width, rate string }
	lines := map[key]int{}
	for _, it := range rec.Items {
		k := key{it.Spec(), it.WidthInches.String(), it.Rate.String()}
		i, ok := lines[k]
		if !ok {
			i = len(data.Lines)
			lines[k] = i
			data.Lines = append(data.Lines, ChallanLine{
				Index:       i + 1,
				Description: lineDescription(it),
				HSN:         settings.HSNCode,
				QuantityKg:  decimal.Zero,
				Rate:        it.Rate,
			})
		}
		data.Lines[i].Rolls++
		data.Lines[i].QuantityKg = data.Lines[i].QuantityKg.Add(it.WeightKg)
		data.TotalRolls++
		data.TotalWeightKg = data.TotalWeightKg.Add(it.WeightKg)
	}

	for i := range data.Lines {
		data.Lines[i].Amount = valueobject.RoundMoney(data.Lines[i].QuantityKg.Mul(data.Lines[i].Rate))
		data.Total = data.Total.Add(data.Lines[i].Amount)
	}

	data.GrandTotal = data.Total
	if withGST {
		gst := valueobject.ComputeGST(data.Total, settings.GSTRatePercent, settings.CompanyStateCode, rec.ClientGSTIN())
		data.GST = &gst
		data.GrandTotal = gst.GrandTotal
	}
	data.AmountInWords = valueobject.AmountInWords(data.GrandTotal)
	return data
}

func lineDescription(it dispatch.Item) string {
	spec := it.Spec()
	if spec == "" {
		spec = "Paper reel"
	}
	if it.WidthInches.IsZero() {
		return spec
	}
	return fmt.Sprintf("%s, %s\" reel", spec, it.WidthInches.Round(2).String())
}

// BuildMaterialChallan shapes an inward or outward material challan
func BuildMaterialChallan(ch inventory.MaterialChallan, dir inventory.Direction) MaterialChallanData {
	partyLabel := "Received from"
	if dir == inventory.DirectionOutward {
		partyLabel = "Sent to"
	}
	number := ch.FrontendID
	if number == "" {
		number = ch.ID
	}
	return MaterialChallanData{
		Number:           number,
		Direction:        dir.Label(),
		Time:             ch.Time.Time,
		MaterialName:     ch.MaterialName,
		Quantity:         ch.Quantity,
		Unit:             ch.Unit,
		PartyName:        ch.PartyName,
		PartyLabel:       partyLabel,
		VehicleNumber:    ch.VehicleNumber,
		ChallanReference: ch.ChallanReference,
		Remarks:          ch.Remarks,
		CreatedBy:        ch.CreatedBy,
	}
}

// BuildDispatchSummary tabulates dispatches in the given date range
func BuildDispatchSummary(records []dispatch.Record, from, to time.Time) DispatchSummaryData {
	summary := dispatch.Summarize(records)
	data := DispatchSummaryData{
		From:          from,
		To:            to,
		Count:         summary.Count,
		TotalItems:    summary.TotalItems,
		TotalWeightKg: decimal.RequireFromString(summary.TotalWeightKg),
		Rows:          make([]DispatchSummaryRow, 0, len(records)),
	}
	for i, r := range records {
		data.Rows = append(data.Rows, DispatchSummaryRow{
			Index:          i + 1,
			DispatchNumber: r.Number(),
			DispatchDate:   r.DispatchDate.Time,
			ClientName:     r.ClientName(),
			VehicleNumber:  r.VehicleNumber,
			DriverName:     r.DriverName,
			Items:          r.ItemCount(),
			WeightKg:       r.ItemWeight(),
			Status:         r.Status.Label(),
		})
	}
	for _, st := range dispatch.AllStatuses() {
		if n := summary.ByStatus[st]; n > 0 {
			data.ByStatus = append(data.ByStatus, DispatchStatusCount{Status: st.Label(), Count: n})
		}
	}
	return data
}
