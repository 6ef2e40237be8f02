package commands

// Subscription tears down one dispatcher subscription.
type Subscription interface {
	Unsubscribe()
}

// Subscriptions groups the subscriptions made for one container.
type Subscriptions []Subscription

// Unsubscribe removes every subscription, latest first.
func (s Subscriptions) Unsubscribe() {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != nil {
			s[i].Unsubscribe()
		}
	}
}
