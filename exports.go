package kvobserver

// Re-export core types from subpackages
import (
	"github.com/a2y-d5l/go-kvobserver/dispatch"
	"github.com/a2y-d5l/go-kvobserver/kvo"
	"github.com/a2y-d5l/go-kvobserver/observer"
	"github.com/a2y-d5l/go-kvobserver/observing"
)

// Core types
type Registry = observer.Registry
type ID = observer.ID
type Handler = observer.Handler
type Managed = observer.Managed

// Observation primitive
type Subject = kvo.Subject
type Observable = kvo.Observable
type Change = kvo.Change
type Options = kvo.Options

const (
	OptionOld     = kvo.OptionOld
	OptionInitial = kvo.OptionInitial
	OptionPrior   = kvo.OptionPrior
)

// Constructor
var New = observer.New

// Option types
type Option = observer.Option
type ObserveOption = observer.ObserveOption

var (
	WithName       = observer.WithName
	WithLogger     = observer.WithLogger
	WithMetrics    = observer.WithMetrics
	WithMainQueue  = observer.WithMainQueue
	StoreAsPointer = observer.StoreAsPointer
)

// Dispatch policies
type Policy = dispatch.Policy

var (
	Direct                            = dispatch.Direct
	UnsafeSync                        = dispatch.UnsafeSync
	Async                             = dispatch.Async
	AsyncOnMain                       = dispatch.AsyncOnMain
	AsyncDirectInitial                = dispatch.AsyncDirectInitial
	AsyncOnMainDirectInitial          = dispatch.AsyncOnMainDirectInitial
	DirectOrAsyncOnMain               = dispatch.DirectOrAsyncOnMain
	ManagedSync                       = dispatch.ManagedSync
	ManagedAsync                      = dispatch.ManagedAsync
	ManagedSyncDirectInitial          = dispatch.ManagedSyncDirectInitial
	ManagedAsyncDirectInitial         = dispatch.ManagedAsyncDirectInitial
	ManagedInferredSync               = dispatch.ManagedInferredSync
	ManagedInferredAsync              = dispatch.ManagedInferredAsync
	ManagedInferredSyncDirectInitial  = dispatch.ManagedInferredSyncDirectInitial
	ManagedInferredAsyncDirectInitial = dispatch.ManagedInferredAsyncDirectInitial
)

// Groups
type Group = observing.Group
type Declaration = observing.Declaration

var NewGroup = observing.New
