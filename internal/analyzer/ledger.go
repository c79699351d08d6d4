package analyzer

// apply books delta against the ledger, clamping to the model bounds when a
// model is given. Clamped-away amounts are kept in Overcap and Underflow so
// the loss stays visible.
func (l *ResourceLedger) apply(delta int64, m *ResourceModel) {
	l.Changes++
	if delta >= 0 {
		l.Generated += delta
	} else {
		l.Spent += -delta
	}

	next := l.Current + delta
	if m != nil {
		if m.Ceiling > 0 && next > m.Ceiling {
			l.Overcap += next - m.Ceiling
			next = m.Ceiling
		}
		if next < m.Floor {
			l.Underflow += m.Floor - next
			next = m.Floor
		}
	}
	l.Current = next
}

func newLedger(resourceType string, m *ResourceModel) *ResourceLedger {
	l := &ResourceLedger{Type: resourceType}
	if m != nil {
		l.Current = m.Initial
	}
	return l
}
