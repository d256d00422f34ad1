package version

// Version is the extension server version reported to the UI.
const Version = "0.3.0"
