package adaptor

// BaseKind tags a BaseContract reference as an interface or a contract.
type BaseKind int

const (
	// BaseKindInterface describes a base element which is an interface.
	BaseKindInterface BaseKind = iota
	// BaseKindContract describes a base element which is a contract.
	BaseKindContract
)

// BaseContract is a tagged reference to one base element of a contract: either an interface or a contract.
// References are shared between a derived element and the program tree and are observed, never mutated, through
// this type.
type BaseContract struct {
	// kind describes which variant this reference holds.
	kind BaseKind

	// iface holds the interface reference when kind is BaseKindInterface.
	iface *Interface

	// contract holds the contract reference when kind is BaseKindContract.
	contract *Contract
}

// NewInterfaceBase wraps an interface as a base element reference.
func NewInterfaceBase(iface *Interface) *BaseContract {
	return &BaseContract{kind: BaseKindInterface, iface: iface}
}

// NewContractBase wraps a contract as a base element reference.
func NewContractBase(contract *Contract) *BaseContract {
	return &BaseContract{kind: BaseKindContract, contract: contract}
}

// Kind returns which variant this reference holds.
func (b *BaseContract) Kind() BaseKind {
	return b.kind
}

// Interface returns the interface reference. It is nil unless Kind is BaseKindInterface.
func (b *BaseContract) Interface() *Interface {
	return b.iface
}

// Contract returns the contract reference. It is nil unless Kind is BaseKindContract.
func (b *BaseContract) Contract() *Contract {
	return b.contract
}

// Name returns the name of the referenced element.
func (b *BaseContract) Name() string {
	if b.kind == BaseKindInterface {
		return b.iface.Name()
	}
	return b.contract.Name()
}

// FunctionIndex returns the function-name watermark reached by the referenced element's subtree.
func (b *BaseContract) FunctionIndex() int {
	if b.kind == BaseKindInterface {
		return b.iface.FunctionIndex()
	}
	return b.contract.FunctionIndex()
}

// LastBaseName returns the base-name chain watermark reached by the referenced element's subtree.
func (b *BaseContract) LastBaseName() string {
	if b.kind == BaseKindInterface {
		return b.iface.LastBaseName()
	}
	return b.contract.LastBaseName()
}
