package domain

// AnalyticsType discriminates analytics documents sharing one collection.
type AnalyticsType string

const (
	AnalyticsExecution AnalyticsType = "execution-analytics"
	AnalyticsOperation AnalyticsType = "operation-analytics"
	AnalyticsWallet    AnalyticsType = "wallet-analytics"
)

// String returns the string representation of AnalyticsType.
func (t AnalyticsType) String() string {
	return string(t)
}

// IsValid checks if the analytics type is a known value.
func (t AnalyticsType) IsValid() bool {
	return t == AnalyticsExecution || t == AnalyticsOperation || t == AnalyticsWallet
}
