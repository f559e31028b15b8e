// Package protocol implements the shared semantic operations of the chat
// service and the two text wire encodings that carry them. One opcode table
// drives both encodings; a codec per wire family handles nothing beyond
// (de)serialization, so the families cannot diverge in behavior.
package protocol

// Errno is the fixed error enumeration shared by every protocol surface.
type Errno int

const (
	Success            Errno = 0
	UserTaken          Errno = 1
	UserDNE            Errno = 2
	WrongPass          Errno = 3
	DBError            Errno = 4
	UnsupportedVersion Errno = 5
	UnknownCommand     Errno = 6
	IDDNE              Errno = 7
	UserLoggedOn       Errno = 8
)

func (e Errno) String() string {
	switch e {
	case Success:
		return "success"
	case UserTaken:
		return "username already exists"
	case UserDNE:
		return "username does not exist"
	case WrongPass:
		return "incorrect password"
	case DBError:
		return "database error"
	case UnsupportedVersion:
		return "unsupported protocol version"
	case UnknownCommand:
		return "unknown wire command"
	case IDDNE:
		return "message does not exist"
	case UserLoggedOn:
		return "user already logged on"
	default:
		return "unknown error"
	}
}
