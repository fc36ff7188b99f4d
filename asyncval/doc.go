// Package asyncval runs an external configuration validator in the
// background and gates configuration reads on its outcome.
//
// A read of a configuration file first consults [Session.Gate]. The
// first read starts the validator and is asked to come back later; once
// the validator has succeeded the next read proceeds without internal
// validation, and once it has failed the next read is rejected.
package asyncval
