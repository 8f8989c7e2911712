package mongo

import (
	"github.com/shopspring/decimal"

	"sim-dashboard/internal/domain"
	"sim-dashboard/internal/storage"
)

type executionDoc struct {
	ExeID         string                 `bson:"exeId"`
	AnalyticsType string                 `bson:"analyticsType"`
	Timestamp     int64                  `bson:"timestamp"`
	StrategyType  string                 `bson:"strategyType"`
	Assets        []string               `bson:"assets"`
	Status        string                 `bson:"status"`
	Props         map[string]interface{} `bson:"props,omitempty"`
}

type assetStatusDoc struct {
	Amount decimal.Decimal `bson:"amount"`
	Price  decimal.Decimal `bson:"price"`
}

type walletDoc struct {
	ExeID         string                    `bson:"exeId"`
	AnalyticsType string                    `bson:"analyticsType"`
	Timestamp     int64                     `bson:"timestamp"`
	WalletValue   decimal.Decimal           `bson:"walletValue"`
	AssetStatuses map[string]assetStatusDoc `bson:"assetStatuses"`
}

type operationDoc struct {
	ExeID         string          `bson:"exeId"`
	AnalyticsType string          `bson:"analyticsType"`
	Timestamp     int64           `bson:"timestamp"`
	Base          string          `bson:"base"`
	Quote         string          `bson:"quote"`
	Amount        decimal.Decimal `bson:"amount"`
	Side          string          `bson:"side"`
	AmountSide    string          `bson:"amountSide"`
	Price         decimal.Decimal `bson:"price"`
}

func (d *executionDoc) toDomain() (*domain.ExecutionRecord, error) {
	props, err := storage.DecodeProps(d.Props)
	if err != nil {
		return nil, domain.NewIntegrityError(d.ExeID, "props", -1, err)
	}
	return &domain.ExecutionRecord{
		ExeID:        d.ExeID,
		StrategyType: d.StrategyType,
		Assets:       d.Assets,
		Status:       domain.ExecutionStatus(d.Status),
		Props:        props,
		Timestamp:    d.Timestamp,
	}, nil
}

func fromExecution(e *domain.ExecutionRecord) *executionDoc {
	props := make(map[string]interface{}, len(e.Props))
	for k, v := range e.Props {
		props[k] = v
	}
	return &executionDoc{
		ExeID:         e.ExeID,
		AnalyticsType: domain.AnalyticsExecution.String(),
		Timestamp:     e.Timestamp,
		StrategyType:  e.StrategyType,
		Assets:        e.Assets,
		Status:        e.Status.String(),
		Props:         props,
	}
}

func (d *walletDoc) toDomain() *domain.WalletSnapshot {
	statuses := make(map[string]domain.AssetStatus, len(d.AssetStatuses))
	for asset, s := range d.AssetStatuses {
		statuses[asset] = domain.AssetStatus{Amount: s.Amount, Price: s.Price}
	}
	return &domain.WalletSnapshot{
		ExeID:         d.ExeID,
		Timestamp:     d.Timestamp,
		WalletValue:   d.WalletValue,
		AssetStatuses: statuses,
	}
}

func fromWallet(w *domain.WalletSnapshot) *walletDoc {
	statuses := make(map[string]assetStatusDoc, len(w.AssetStatuses))
	for asset, s := range w.AssetStatuses {
		statuses[asset] = assetStatusDoc{Amount: s.Amount, Price: s.Price}
	}
	return &walletDoc{
		ExeID:         w.ExeID,
		AnalyticsType: domain.AnalyticsWallet.String(),
		Timestamp:     w.Timestamp,
		WalletValue:   w.WalletValue,
		AssetStatuses: statuses,
	}
}

func (d *operationDoc) toDomain() *domain.OperationEvent {
	return &domain.OperationEvent{
		ExeID:      d.ExeID,
		Timestamp:  d.Timestamp,
		Base:       d.Base,
		Quote:      d.Quote,
		Side:       domain.Side(d.Side),
		Amount:     d.Amount,
		AmountSide: domain.AmountSide(d.AmountSide),
		Price:      d.Price,
	}
}

func fromOperation(o *domain.OperationEvent) *operationDoc {
	return &operationDoc{
		ExeID:         o.ExeID,
		AnalyticsType: domain.AnalyticsOperation.String(),
		Timestamp:     o.Timestamp,
		Base:          o.Base,
		Quote:         o.Quote,
		Amount:        o.Amount,
		Side:          o.Side.String(),
		AmountSide:    o.AmountSide.String(),
		Price:         o.Price,
	}
}
