package domain

// UnlimitedTweets marks a plan without a posting cap.
const UnlimitedTweets = -1

type SubscriptionPlan struct {
	Name  string
	Price int // INR per month
	Limit int // tweets per billing cycle, UnlimitedTweets for no cap
}

var SubscriptionPlans = map[string]SubscriptionPlan{
	"Free":   {Name: "Free", Price: 0, Limit: 1},
	"Bronze": {Name: "Bronze", Price: 100, Limit: 3},
	"Silver": {Name: "Silver", Price: 300, Limit: 5},
	"Gold":   {Name: "Gold", Price: 1000, Limit: UnlimitedTweets},
}

func PlanByName(name string) (SubscriptionPlan, bool) {
	p, ok := SubscriptionPlans[name]
	return p, ok
}

// AllowsTweet reports whether a user with count posted tweets may post one
// more under this plan.
func (p SubscriptionPlan) AllowsTweet(count int) bool {
	return p.Limit == UnlimitedTweets || count < p.Limit
}
