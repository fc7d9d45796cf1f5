package domain

import "fmt"

// SerialScope - область нумерации последовательных серийных номеров.
// Счетчики ведутся отдельно для договоров и транзакций каждого владельца.
type SerialScope string

const (
	SerialScopeContract    SerialScope = "contract"
	SerialScopeTransaction SerialScope = "transaction"
)

// FormatSerial форматирует порядковый номер как пятизначную десятичную
// строку с ведущими нулями. Значения свыше 99999 не усекаются, а дают
// более длинную строку.
func FormatSerial(n int64) string {
	return fmt.Sprintf("%05d", n)
}
