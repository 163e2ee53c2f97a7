package cart

type ActionType string

const (
	ActionLoad           ActionType = "LOAD"
	ActionAdd            ActionType = "ADD"
	ActionRemove         ActionType = "REMOVE"
	ActionUpdateQuantity ActionType = "UPDATE_QUANTITY"
	ActionClear          ActionType = "CLEAR"
	ActionApplyCoupon    ActionType = "APPLY_COUPON"
	ActionRemoveCoupon   ActionType = "REMOVE_COUPON"
)

// Action is a tagged cart mutation. Only the fields relevant to Type are read.
type Action struct {
	Type      ActionType
	State     State
	Item      LineItem
	ProductID string
	Size      string
	Quantity  int
	Coupon    *AppliedCoupon
}

func Load(s State) Action { return Action{Type: ActionLoad, State: s} }

func Add(item LineItem) Action { return Action{Type: ActionAdd, Item: item} }

func Remove(productID, size string) Action {
	return Action{Type: ActionRemove, ProductID: productID, Size: size}
}

func UpdateQuantity(productID, size string, quantity int) Action {
	return Action{Type: ActionUpdateQuantity, ProductID: productID, Size: size, Quantity: quantity}
}

func Clear() Action { return Action{Type: ActionClear} }

func ApplyCoupon(c AppliedCoupon) Action { return Action{Type: ActionApplyCoupon, Coupon: &c} }

func RemoveCoupon() Action { return Action{Type: ActionRemoveCoupon} }

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a.Type {
	case ActionLoad:
		return Normalize(a.State)

	case ActionAdd:
		if a.Item.Quantity < 1 {
			return next
		}
		next.Items = addLine(next.Items, a.Item)

	case ActionRemove:
		next.Items = removeLine(next.Items, a.ProductID, a.Size)

	case ActionUpdateQuantity:
		if a.Quantity <= 0 {
			next.Items = removeLine(next.Items, a.ProductID, a.Size)
			break
		}
		for i := range next.Items {
			if next.Items[i].sameLine(a.ProductID, a.Size) {
				next.Items[i].Quantity = a.Quantity
			}
		}

	case ActionClear:
		next.Items = []LineItem{}
		next.AppliedCoupon = nil

	case ActionApplyCoupon:
		if a.Coupon != nil {
			c := *a.Coupon
			next.AppliedCoupon = &c
		}

	case ActionRemoveCoupon:
		next.AppliedCoupon = nil
	}
	return next
}

func removeLine(items []LineItem, productID, size string) []LineItem {
	out := items[:0]
	for _, it := range items {
		if !it.sameLine(productID, size) {
			out = append(out, it)
		}
	}
	return out
}
