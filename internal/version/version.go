package version

// Version is the current release of find-emails
const Version = "0.3.0"
