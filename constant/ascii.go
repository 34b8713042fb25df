package constant

// AsciiArtLogo is the application's banner shown in the root help.
const AsciiArtLogo = `
       _                          
  ___ (_)_ __   ___  ___ _ __ ___ 
 / __|| | '_ \ / _ \/ __| '__/ __|
| (__ | | | | |  __/\__ \ | | (__ 
 \___||_|_| |_|\___||___/_|  \___|
`
